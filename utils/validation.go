package utils

import "regexp"

var (
	cnicPattern  = regexp.MustCompile(`^[0-9]{5}-[0-9]{7}-[0-9]$`)
	phonePattern = regexp.MustCompile(`^(\+92|0)?[0-9]{10,11}$`)
)

// ValidateCNIC checks the dash-separated national identity number format
// (XXXXX-XXXXXXX-X).
func ValidateCNIC(cnic string) bool {
	return cnicPattern.MatchString(cnic)
}

// ValidatePhoneNumber checks a Pakistani phone number: optional +92 or 0
// prefix followed by 10-11 digits.
func ValidatePhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}
