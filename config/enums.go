package config

// Named font preset used by the reading surface.
// ENUM(default, mono, smallcaps)
type FontFamily int

// Width class of the reading column.
// ENUM(compact, normal, wide)
type MarginSize int

// Color theme of the reading surface.
// ENUM(light, dark, sepia)
type Theme int
