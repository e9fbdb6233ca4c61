package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas). Los mensajes llegan al cliente.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = WithKind(ErrNotFound, "user not found")
	ErrEmailAlreadyExists = WithKind(ErrConflict, "a user with this email already exists")
	ErrInvalidInput       = errors.New("invalid request data")
	ErrDuplicate          = errors.New("resource already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict with current state")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// Errores del registro de ventas. Se clasifican por su kind (NotFound → 404, stock → 409).
var (
	ErrNoMatchingProducts = WithKind(ErrNotFound, "no matching products")
	ErrProductsMissing    = WithKind(ErrNotFound, "one or more products do not exist")
	ErrSaleNotFound       = WithKind(ErrNotFound, "sale not found")
	// ErrStockConflict: el UPDATE condicional no afectó filas (otra venta consumió el stock entre lectura y escritura).
	ErrStockConflict = WithKind(ErrInsufficientStock, "stock changed during sale, please retry")
	// ErrPublicIDTaken: colisión de public_id; el coordinador reintenta con otro.
	ErrPublicIDTaken = WithKind(ErrDuplicate, "public id already used")
)

// kindError error con mensaje propio que errors.Is reconoce como su kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// WithKind crea un error con mensaje msg clasificado como kind.
func WithKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// InsufficientStockError identifica el primer producto sin stock suficiente.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Issue un problema de validación sobre un campo concreto.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError agrupa los problemas de validación de una petición.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Path+": "+is.Message)
	}
	return "invalid request data: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Add registra un problema.
func (e *ValidationError) Add(path, message string) {
	e.Issues = append(e.Issues, Issue{Path: path, Message: message})
}

// OrNil devuelve nil si no hay problemas (evita el nil-interface con puntero no nil).
func (e *ValidationError) OrNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}
