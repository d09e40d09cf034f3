// Package config loads the editor configuration.
//
// Values come from four layers, each overriding the one before:
//
//  1. Built-in defaults (Default)
//  2. The TOML file, xedit.toml unless WithPath names another
//  3. XEDIT_* environment variables (WithEnv)
//  4. Command-line overrides (WithOverrides)
//
// # File Format
//
//	include = ["common.toml"]
//
//	[log]
//	level = "debug"
//
//	[editor]
//	undo_depth = 200
//	macro_depth = 16
//
//	[macro]
//	path = [".", "~/xedit"]
//	profile = "PROFILE"
//	timeout = "2s"
//
//	[settings]
//	trunc = 72
//	case = "M I"
//	stay = true
//
//	[disks]
//	A = { path = ".", access = "RW" }
//	S = { path = "/usr/share/xedit", access = "RO" }
//
//	[keys]
//	PF3 = "QUIT"
//	PF12 = "?"
//
// The settings table takes SET subjects and their operands. Booleans map
// to ON and OFF.
//
// # Environment
//
// XEDIT_LOG_LEVEL, XEDIT_LOG_FILE, XEDIT_PROFILE, XEDIT_UNDO_DEPTH and
// XEDIT_MACRO_PATH (a path list) are mapped directly. Other variables map
// their first word to a section: XEDIT_EDITOR_PAGE_SIZE sets
// editor.page_size.
package config
