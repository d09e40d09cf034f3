package app

import (
	"errors"
	"fmt"
)

// Session errors.
var (
