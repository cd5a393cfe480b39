package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestWrapErrorBadNoRows(t *testing.T) {
	for _, e := range []error{
		fmt.Errorf("foo"),
		errors.New("bar"),
	} {
		if err := WrapError(e); err != e {
			t.Errorf("WrapError(%v) => %v, want %v", e, err, e)
		}
	}
}

func TestWrapErrorGoodNoRows(t *testing.T) {
	if err := WrapError(sql.ErrNoRows); err != ErrRecordNotFound {
		t.Errorf("WrapError(sql.ErrNoRows) => %v, want %v", err, ErrRecordNotFound)
	}
	wrapped := fmt.Errorf("get user: %w", sql.ErrNoRows)
	if err := WrapError(wrapped); err != ErrRecordNotFound {
		t.Errorf("WrapError(%v) => %v, want %v", wrapped, err, ErrRecordNotFound)
	}
}

func TestWrapErrorPostgres(t *testing.T) {
	for code, want := range map[pq.ErrorCode]error{
		"23505": ErrDuplicateKey,
		"23503": ErrForeignKey,
	} {
		if err := WrapError(&pq.Error{Code: code}); err != want {
			t.Errorf("WrapError(pq %s) => %v, want %v", code, err, want)
		}
	}
}

func TestWrapErrorNil(t *testing.T) {
	if err := WrapError(nil); err != nil {
		t.Errorf("WrapError(nil) => %v, want nil", err)
	}
}
