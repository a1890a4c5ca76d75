/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pdftext

import (
	"errors"
	"fmt"
)

// ErrEncrypted is returned for password-protected documents.
var ErrEncrypted = errors.New("pdf is encrypted")

// DecodeError reports a document (or a single page of it) that could not be decoded.
// Page is 1-based; zero means the failure happened before any page was read.
type DecodeError struct {
	Path string
	Page int
	Err  error
}

func (e *DecodeError) Error() string {
	name := e.Path
	if name == "" {
		name = "<reader>"
	}
	if e.Page > 0 {
		return fmt.Sprintf("decode %s page %d: %v", name, e.Page, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
