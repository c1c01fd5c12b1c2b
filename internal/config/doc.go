// Package config defines the application configuration structures and
// the loading/validation logic for them.
package config
