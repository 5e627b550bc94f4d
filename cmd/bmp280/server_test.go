// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestRouter(t *testing.T) {
	l := &latest{}
	h := newRouter(l)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reading", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d before the first reading", rec.Code)
	}

	want := newReading(testEnv, 1013.25, testTime)
	l.set(want)
	for _, path := range []string{"/", "/reading"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("%s: content type %q", path, ct)
		}
		var got Reading
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(Reading{})); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", path, diff)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reading", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d for POST", rec.Code)
	}
}
