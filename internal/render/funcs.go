// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// spanishMagnitudes renders relative times as "hace 3 días".
var spanishMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "ahora", DivBy: time.Second},
	{D: 2 * time.Second, Format: "%s 1 segundo", DivBy: 1},
	{D: time.Minute, Format: "%s %d segundos", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "%s 1 minuto", DivBy: 1},
	{D: time.Hour, Format: "%s %d minutos", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s 1 hora", DivBy: 1},
	{D: humanize.Day, Format: "%s %d horas", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s 1 día", DivBy: 1},
	{D: humanize.Week, Format: "%s %d días", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "%s 1 semana", DivBy: 1},
	{D: humanize.Month, Format: "%s %d semanas", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "%s 1 mes", DivBy: 1},
	{D: humanize.Year, Format: "%s %d meses", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "%s 1 año", DivBy: 1},
	{D: math.MaxInt64, Format: "%s %d años", DivBy: humanize.Year},
}

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"timeAgo": func(t time.Time) string {
			return humanize.CustomRelTime(t, r.now(), "hace", "dentro de", spanishMagnitudes)
		},
		"number": func(n int) string {
			return humanize.FormatInteger("#.###,", n)
		},
		"truncate": func(s string, length int) string {
			runes := []rune(s)
			if len(runes) <= length {
				return s
			}
			return string(runes[:length]) + "…"
		},
		"markdown": r.Markdown,
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
	}
}
