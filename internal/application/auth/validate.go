package auth

import (
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/pkg/normalize"
)

func checkName(verr *domain.ValidationError, path, v string, required bool) {
	if v == "" && !required {
		return
	}
	if !normalize.LenBetween(v, 2, 50) {
		verr.Add(path, "must be between 2 and 50 characters")
	}
}

func checkPassword(verr *domain.ValidationError, path, v string) {
	if !normalize.LenBetween(v, 8, 100) {
		verr.Add(path, "password must be between 8 and 100 characters")
	}
}

func normalizedName(p *string) *string {
	if p == nil {
		return nil
	}
	v := normalize.Name(*p)
	return &v
}
