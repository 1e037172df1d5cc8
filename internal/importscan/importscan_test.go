package importscan

import "testing"

func TestScanJavaScript(t *testing.T) {
	src := []byte(`const _ = require('lodash');
import React from 'react';
import './local';
const dyn = import('axios');
// const skip = require('ignored');
`)
	got := Scan(src, JavaScript, "app.js")
	want := map[string]float64{
		"lodash": 0.9,
		"react":  0.95,
		"axios":  0.8,
	}
	seen := map[string]bool{}
	for _, im := range got {
		seen[im.Package] = true
		if want[im.Package] != 0 && im.Confidence != want[im.Package] {
			t.Errorf("package %s: confidence = %v, want %v", im.Package, im.Confidence, want[im.Package])
		}
	}
	for pkg := range want {
		if !seen[pkg] {
			t.Errorf("missing expected import %s in %+v", pkg, got)
		}
	}
	for _, im := range got {
		if im.Package == "./local" {
			t.Errorf("relative import should not be reported: %+v", im)
		}
	}
}

func TestScanPython(t *testing.T) {
	src := []byte(`import os
from flask import Flask
import yaml as y
`)
	got := Scan(src, Python, "app.py")
	if len(got) != 3 {
		t.Fatalf("got %d imports, want 3: %+v", len(got), got)
	}
	for _, im := range got {
		if im.Package == "flask" && im.Confidence != 0.95 {
			t.Errorf("from-import confidence = %v, want 0.95", im.Confidence)
		}
	}
}

func TestScanGoSkipsStdlib(t *testing.T) {
	src := []byte(`package main

import (
	"fmt"
	"github.com/pkg/errors"
)
`)
	got := Scan(src, GoLang, "main.go")
	if len(got) != 1 || got[0].Package != "github.com/pkg/errors" {
		t.Fatalf("got %+v, want only github.com/pkg/errors", got)
	}
}

func TestScanRustNormalizesUnderscore(t *testing.T) {
	src := []byte(`use serde_json::Value;
extern crate tokio_util;
use std::collections::HashMap;
`)
	got := Scan(src, Rust, "main.rs")
	names := map[string]bool{}
	for _, im := range got {
		names[im.Package] = true
	}
	if !names["serde-json"] || !names["tokio-util"] {
		t.Errorf("got %+v, want serde-json and tokio-util", got)
	}
	if names["std"] {
		t.Errorf("std should be excluded: %+v", got)
	}
}

func TestImportsOfMatchesSubpath(t *testing.T) {
	src := []byte(`const merge = require('lodash/merge');`)
	im, ok := ImportsOf(src, JavaScript, "a.js", "lodash")
	if !ok {
		t.Fatal("expected a match for lodash via subpath import")
	}
	if im.Package != "lodash/merge" {
		t.Errorf("got %q", im.Package)
	}
}

func TestScanDangerousCommandInjection(t *testing.T) {
	src := []byte(`exec('ls ' + req.query.dir);`)
	got := ScanDangerous(src, "handler.js")
	if len(got) != 1 || got[0].Kind != "command-injection" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Line != 1 {
		t.Errorf("line = %d, want 1", got[0].Line)
	}
}

func TestScanConditionalJS(t *testing.T) {
	src := []byte(`try { require('optional-dep') } catch (e) {}`)
	got := ScanConditional(src, JavaScript, "x.js")
	if len(got) != 1 || got[0].Package != "optional-dep" || got[0].ImportType != "conditional" {
		t.Fatalf("got %+v", got)
	}
}
