// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package core

// Marshaler encodes a value into its canonical, deterministic byte form.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Unmarshaler decodes a value previously produced by Marshaler.Marshal.
type Unmarshaler interface {
	Unmarshal(b []byte) error
}
