package itinerary

import "errors"

var ErrValidation = errors.New("validation error")
