package utils

import "github.com/google/uuid"

// GenerateID returns a new random record ID
func GenerateID() string {
	return uuid.NewString()
}

// IsUUID checks if the string is a valid UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
