package services

import "errors"

// ErrNoDataset is returned when a dashboard service is built without data
var ErrNoDataset = errors.New("no sales dataset loaded")
