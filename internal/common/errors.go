// Package common содержит sentinel-ошибки, общие для сервисов и хендлеров.
// Сравнивать через errors.Is.
package common

import "errors"

var (
	// поиск по идентификатору / номеру ничего не нашёл
	ErrNotFound = errors.New("not found")

	// обязательное поле формы пустое, запись не выполнялась
	ErrValidationEmpty = errors.New("required field is empty")

	// уникальное поле уже занято (серийный номер, табельный номер)
	ErrConflict = errors.New("already exists")

	ErrUnauthenticated = errors.New("not logged in")
	ErrAccessDenied    = errors.New("access denied")

	// отчёт не сформирован; запись об использовании при этом уже сохранена
	ErrRenderFailure = errors.New("report rendering failed")
)
