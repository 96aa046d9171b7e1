package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findSymbol returns the first symbol whose Name matches, or nil.
func findSymbol(symbols []Symbol, name string) *Symbol {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
	}
	return nil
}

func assertLineRange(t *testing.T, sym *Symbol) {
	t.Helper()
	assert.GreaterOrEqual(t, sym.StartLine, 0, "StartLine for %s", sym.Name)
	assert.LessOrEqual(t, sym.StartLine, sym.EndLine, "StartLine <= EndLine for %s", sym.Name)
}

func TestExtractor_Supports(t *testing.T) {
	ex := NewExtractor()

	for _, lang := range SupportedLanguages {
		assert.True(t, ex.Supports(lang), "should support %s", lang)
	}
	assert.False(t, ex.Supports(LangUnknown))
	assert.False(t, ex.Supports(Language("cobol")))
}

func TestExtractor_Go(t *testing.T) {
	src := []byte(`package auth

import (
	"errors"
	"example.com/app/store"
)

// ErrBadCredentials is returned on failed logins.
var ErrBadCredentials = errors.New("bad credentials")

const maxAttempts = 3

// Session is an authenticated session.
type Session struct {
	Token string
}

// Store persists sessions.
type Store interface {
	Save(s *Session) error
}

// Login validates credentials.
func Login(user, password string) (*Session, error) {
	return nil, nil
}

func (s *Session) valid() bool { return s.Token != "" }
`)

	ex := NewExtractor()
	symbols, imports, err := ex.Extract("auth.go", src, LangGo)
	require.NoError(t, err)

	login := findSymbol(symbols, "Login")
	require.NotNil(t, login, "Login should be extracted")
	assert.Equal(t, KindFunction, login.Kind)
	assert.True(t, login.Exported)
	assert.Contains(t, login.Signature, "func Login(user, password string)")
	assertLineRange(t, login)

	valid := findSymbol(symbols, "valid")
	require.NotNil(t, valid)
	assert.Equal(t, KindMethod, valid.Kind)
	assert.False(t, valid.Exported)

	session := findSymbol(symbols, "Session")
	require.NotNil(t, session)
	assert.Equal(t, KindClass, session.Kind)
	assert.Contains(t, session.Signature, "type Session struct")

	store := findSymbol(symbols, "Store")
	require.NotNil(t, store)
	assert.Equal(t, KindInterface, store.Kind)

	errVar := findSymbol(symbols, "ErrBadCredentials")
	require.NotNil(t, errVar)
	assert.Equal(t, KindVariable, errVar.Kind)
	assert.True(t, errVar.Exported)

	maxVar := findSymbol(symbols, "maxAttempts")
	require.NotNil(t, maxVar)
	assert.False(t, maxVar.Exported)

	assert.ElementsMatch(t, []string{"errors", "example.com/app/store"}, imports)
}

func TestExtractor_TypeScript(t *testing.T) {
	src := []byte(`import { api } from "./api";
import utils from "../lib/utils";

export interface User {
	id: number;
}

export class Session {
	refresh(): void {}
}

export function login(user: string): Session {
	return new Session();
}

export const parse = (raw: string) => JSON.parse(raw);

const internalCache = {};

export { api as client };
`)

	ex := NewExtractor()
	symbols, imports, err := ex.Extract("auth.ts", src, LangTypeScript)
	require.NoError(t, err)

	login := findSymbol(symbols, "login")
	require.NotNil(t, login)
	assert.Equal(t, KindFunction, login.Kind)
	assert.True(t, login.Exported)

	user := findSymbol(symbols, "User")
	require.NotNil(t, user)
	assert.Equal(t, KindInterface, user.Kind)

	session := findSymbol(symbols, "Session")
	require.NotNil(t, session)
	assert.Equal(t, KindClass, session.Kind)

	refresh := findSymbol(symbols, "refresh")
	require.NotNil(t, refresh)
	assert.Equal(t, KindMethod, refresh.Kind)

	parse := findSymbol(symbols, "parse")
	require.NotNil(t, parse, "arrow function consts should be extracted")
	assert.Equal(t, KindFunction, parse.Kind)
	assert.True(t, parse.Exported)

	cache := findSymbol(symbols, "internalCache")
	require.NotNil(t, cache)
	assert.Equal(t, KindVariable, cache.Kind)
	assert.False(t, cache.Exported)

	client := findSymbol(symbols, "api")
	require.NotNil(t, client, "re-exported names should appear")
	assert.Equal(t, KindExport, client.Kind)

	assert.ElementsMatch(t, []string{"./api", "../lib/utils"}, imports)
}

func TestExtractor_Python(t *testing.T) {
	src := []byte(`import os
from collections import OrderedDict
from .models import User

class SessionStore:
    def save(self, session):
        pass

    def _evict(self):
        pass

def login(user, password):
    return None

def _hash(password):
    return password
`)

	ex := NewExtractor()
	symbols, imports, err := ex.Extract("auth.py", src, LangPython)
	require.NoError(t, err)

	login := findSymbol(symbols, "login")
	require.NotNil(t, login)
	assert.Equal(t, KindFunction, login.Kind)
	assert.True(t, login.Exported)
	assert.Contains(t, login.Signature, "def login(user, password)")

	hash := findSymbol(symbols, "_hash")
	require.NotNil(t, hash)
	assert.False(t, hash.Exported, "underscore names are private")

	store := findSymbol(symbols, "SessionStore")
	require.NotNil(t, store)
	assert.Equal(t, KindClass, store.Kind)

	save := findSymbol(symbols, "save")
	require.NotNil(t, save)
	assert.Equal(t, KindMethod, save.Kind, "functions inside classes are methods")

	assert.ElementsMatch(t, []string{"os", "collections", ".models"}, imports)
}

func TestExtractor_Rust(t *testing.T) {
	src := []byte(`use std::collections::HashMap;
use crate::store::SessionStore;

pub struct Session {
    token: String,
}

pub enum LoginError {
    BadCredentials,
}

pub trait Store {
    fn save(&self, s: &Session);
}

impl Session {
    pub fn is_valid(&self) -> bool {
        !self.token.is_empty()
    }
}

pub fn login(user: &str) -> Result<Session, LoginError> {
    Err(LoginError::BadCredentials)
}

const MAX_ATTEMPTS: u32 = 3;
`)

	ex := NewExtractor()
	symbols, imports, err := ex.Extract("auth.rs", src, LangRust)
	require.NoError(t, err)

	login := findSymbol(symbols, "login")
	require.NotNil(t, login)
	assert.Equal(t, KindFunction, login.Kind)
	assert.True(t, login.Exported)

	session := findSymbol(symbols, "Session")
	require.NotNil(t, session)
	assert.Equal(t, KindClass, session.Kind)

	loginErr := findSymbol(symbols, "LoginError")
	require.NotNil(t, loginErr)
	assert.Equal(t, KindClass, loginErr.Kind)

	store := findSymbol(symbols, "Store")
	require.NotNil(t, store)
	assert.Equal(t, KindInterface, store.Kind)

	isValid := findSymbol(symbols, "is_valid")
	require.NotNil(t, isValid)
	assert.Equal(t, KindMethod, isValid.Kind, "functions inside impl blocks are methods")

	maxAttempts := findSymbol(symbols, "MAX_ATTEMPTS")
	require.NotNil(t, maxAttempts)
	assert.Equal(t, KindVariable, maxAttempts.Kind)
	assert.False(t, maxAttempts.Exported, "no pub modifier")

	assert.ElementsMatch(t, []string{"std::collections::HashMap", "crate::store::SessionStore"}, imports)
}

func TestExtractor_UnsupportedLanguage(t *testing.T) {
	ex := NewExtractor()
	_, _, err := ex.Extract("readme.md", []byte("# hello"), LangUnknown)
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path    string
		content string
		want    Language
	}{
		{"main.go", "package main", LangGo},
		{"app.ts", "export const x = 1;", LangTypeScript},
		{"app.tsx", "export const x = <div/>;", LangTypeScript},
		{"script.py", "import os", LangPython},
		{"lib.rs", "pub fn x() {}", LangRust},
		{"notes.txt", "hello", LangUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path, []byte(tt.content)))
		})
	}
}
