package service

import (
	"encoding/json"
	"net/mail"
	"strings"
)

// normalizeCurrency приводит код к ISO 4217 виду (три заглавные латинские буквы).
func normalizeCurrency(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return "", false
		}
	}
	return code, true
}

func normalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

func validJSON(raw []byte) bool {
	return len(raw) == 0 || json.Valid(raw)
}
