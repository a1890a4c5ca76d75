/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Screenplays copied through word processors carry typographic apostrophes,
// and some PDFs decode them as the UTF-8 bytes read back as Windows-1252.
var mojibake = strings.NewReplacer(
	"â€™", "'", // ’
	"â€˜", "'", // ‘
)

func foldApostrophe(r rune) rune {
	switch r {
	case '‘', '’', '‛', 'ʼ', '′', '´', '`', '＇':
		return '\''
	}
	return r
}

// normalizeName folds apostrophe variants to ASCII and applies NFKC so that the
// same speaker groups together however the PDF encoded the name.
func normalizeName(s string) string {
	s = mojibake.Replace(s)
	// Chained transformers are stateful; build one per call.
	t := transform.Chain(runes.Map(foldApostrophe), norm.NFKC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}

// reContinued matches a trailing "(CONT'D)". Up to three non-letter runes may
// sit between CONT and D to absorb apostrophes that survived normalization garbled.
var reContinued = regexp.MustCompile(`\s*\(\s*CONT[^A-Za-z0-9()]{0,3}D\s*\)\s*$`)

// speakerName returns the normalized character name of a name line.
func speakerName(trimmed string) string {
	name := normalizeName(trimmed)
	return strings.TrimSpace(reContinued.ReplaceAllString(name, ""))
}
