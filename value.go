// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package applecpus

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// MaxStringLen is the maximum number of bytes considered when decoding a
// string from a byte blob.
const MaxStringLen = 64

// Errors returned by the property decoders.
var (
	ErrWrongType = errors.New("wrong property type")
	ErrInexact   = errors.New("number not representable as 64 bit integer")
	ErrMalformed = errors.New("malformed property data")
)

// Value is a dynamically-typed property value, being one of [Data],
// [Number], [String], or [Other].
type Value interface {
	// TypeName returns the registry's name of the value's type, such as
	// “CFData”.
	TypeName() string
	isValue()
}

// Data is a raw byte blob property value.
type Data []byte

// Number is a numeric property value. Exact is false if the registry's
// number could not be represented as a 64 bit signed integer without loss,
// in which case Int is only an approximation.
type Number struct {
	Int   int64
	Exact bool
}

// String is a string property value.
type String string

// Other is a property value of any other type, such as a dictionary or
// boolean.
type Other struct {
	Type string
}

func (Data) TypeName() string   { return "CFData" }
func (Number) TypeName() string { return "CFNumber" }
func (String) TypeName() string { return "CFString" }
func (o Other) TypeName() string {
	if o.Type == "" {
		return "unknown"
	}
	return o.Type
}

func (Data) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Other) isValue()  {}

// DecodeInt returns the integer of a [Number] value.
func DecodeInt(v Value) (int64, error) {
	switch v := v.(type) {
	case Number:
		if !v.Exact {
			return v.Int, ErrInexact
		}
		return v.Int, nil
	default:
		return 0, wrongType(v, "CFNumber")
	}
}

// DecodeClusterType returns the cluster type of a [Data] value. The value
// must contain exactly one non-zero byte, optionally followed by a single
// zero byte; otherwise, UnknownClusterType is returned together with an
// error.
func DecodeClusterType(v Value) (ClusterType, error) {
	d, ok := v.(Data)
	if !ok {
		return UnknownClusterType, wrongType(v, "CFData")
	}
	switch {
	case len(d) == 1 && d[0] != 0:
	case len(d) == 2 && d[0] != 0 && d[1] == 0:
	default:
		return UnknownClusterType, fmt.Errorf("%w: %d bytes of cluster type", ErrMalformed, len(d))
	}
	return ClusterType(d[0]), nil
}

// DecodeFirstString returns the first zero-terminated string of a [Data]
// value, ignoring anything after the first zero byte. Only the first
// [MaxStringLen] bytes are considered: if there is no zero byte within
// them, the string is truncated to at most MaxStringLen bytes.
//
// For convenience, [String] values are accepted too and are cut at their
// first zero character.
func DecodeFirstString(v Value) (string, error) {
	switch v := v.(type) {
	case Data:
		b := []byte(v)
		if len(b) > MaxStringLen {
			b = b[:MaxStringLen]
		}
		if idx := bytes.IndexByte(b, 0); idx >= 0 {
			b = b[:idx]
		}
		return string(b), nil
	case String:
		s := string(v)
		if idx := strings.IndexByte(s, 0); idx >= 0 {
			s = s[:idx]
		}
		return s, nil
	default:
		return "", wrongType(v, "CFData")
	}
}

func wrongType(v Value, expected string) error {
	if v == nil {
		return fmt.Errorf("%w: nil instead of %s", ErrWrongType, expected)
	}
	return fmt.Errorf("%w: %s instead of %s", ErrWrongType, v.TypeName(), expected)
}
