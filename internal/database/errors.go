package database

import "errors"

var (
	// ErrSlotTaken срабатывает, когда слот (provider_id, date) уже занят.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail пользователь с таким email уже существует
	ErrDuplicateEmail = errors.New("email already registered")
)
