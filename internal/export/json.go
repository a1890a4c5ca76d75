/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"musephoria/internal/domain"
	"musephoria/internal/script"
)

//go:embed schema/screenplay.schema.json
var screenplaySchema []byte

// Schema returns the JSON schema of the screenplay document.
func Schema() []byte { return append([]byte(nil), screenplaySchema...) }

// WriteJSON writes sp as indented JSON. Empty categories are written as [].
func WriteJSON(w io.Writer, sp domain.Screenplay) error {
	if sp.SceneHeadings == nil {
		sp.SceneHeadings = []domain.Element{}
	}
	if sp.ScreenDirections == nil {
		sp.ScreenDirections = []domain.Element{}
	}
	if sp.Characters == nil {
		sp.Characters = []domain.Character{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sp)
}

// ValidateJSON checks a screenplay document against the embedded schema.
// All violations are reported in one error.
func ValidateJSON(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(screenplaySchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate screenplay json: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New("screenplay json invalid: " + strings.Join(msgs, "; "))
}

// displayEntry is a display item together with its visual treatment.
type displayEntry struct {
	domain.DisplayItem
	Style domain.DisplayStyle `json:"style"`
}

// WriteDisplayJSON writes the rendered item sequence with per-item styles.
func WriteDisplayJSON(w io.Writer, items []domain.DisplayItem) error {
	out := make([]displayEntry, 0, len(items))
	for _, it := range items {
		out = append(out, displayEntry{DisplayItem: it, Style: script.StyleFor(it.Tag)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
