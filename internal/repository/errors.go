package repository

import "errors"

var (
	// источник снимка отсутствует, это не то же самое, что пустой снимок
	ErrNoData = errors.New("хранилище не вернуло данные")

	// условие отсутствия id при вставке нарушено
	ErrAlreadyExists = errors.New("запись с таким id уже существует")

	ErrNotFound = errors.New("запись не найдена")
)
