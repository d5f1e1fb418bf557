package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"
)

var SqBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var ErrBadQuery = errors.New("bad query")

// UniqueViolation is the postgres SQLSTATE for duplicate keys.
const UniqueViolation = "23505"
