package device

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength   = 100
	maxSlugLength   = 50
	maxTypeIDLength = 64
	slugPattern     = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var slugRegex = regexp.MustCompile(slugPattern)

// ValidateDevice performs validation on a device.
// Returns an error describing the first validation failure found.
func ValidateDevice(d *Device) error {
	if d == nil {
		return ErrInvalidDevice
	}

	if err := ValidateName(d.Name); err != nil {
		return err
	}

	// Validate slug if provided (empty slug will be generated)
	if d.Slug != "" {
		if err := ValidateSlug(d.Slug); err != nil {
			return err
		}
	}

	if strings.TrimSpace(d.RoomID) == "" {
		return fmt.Errorf("%w: room_id is required", ErrInvalidRoom)
	}

	return ValidateTypeID(d.TypeID)
}

// ValidateName checks that a device name is non-empty and within limits.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateSlug checks that a slug is lowercase alphanumeric with hyphens.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug cannot be empty", ErrInvalidSlug)
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("%w: slug exceeds %d characters", ErrInvalidSlug, maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: slug must be lowercase alphanumeric with hyphens", ErrInvalidSlug)
	}
	return nil
}

// ValidateTypeID checks the free-form device type identifier.
func ValidateTypeID(typeID string) error {
	typeID = strings.TrimSpace(typeID)
	if typeID == "" {
		return fmt.Errorf("%w: type_id cannot be empty", ErrInvalidTypeID)
	}
	if len(typeID) > maxTypeIDLength {
		return fmt.Errorf("%w: type_id exceeds %d characters", ErrInvalidTypeID, maxTypeIDLength)
	}
	return nil
}

// GenerateSlug creates a URL-safe slug from a device name.
// Example: "Living Room Dimmer" -> "living-room-dimmer"
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	// Remove any characters that aren't alphanumeric or hyphens
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	slug = result.String()

	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// GenerateID creates a new unique device identifier.
func GenerateID() string {
	return uuid.New().String()
}
