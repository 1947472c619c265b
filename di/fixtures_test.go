package di_test

import "errors"

type DB struct {
	DSN    string
	closed bool
}

func (d *DB) Dispose() error {
	d.closed = true
	return nil
}

type Logger struct {
	Level string
}

type BasketService struct {
	DB     *DB
	Logger *Logger
}

type UserService struct {
	DB     *DB
	Logger *Logger
	Basket *BasketService
}

type failingCloser struct{}

func (failingCloser) Dispose() error { return errors.New("close failed") }
