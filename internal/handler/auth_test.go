package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailInDomain(t *testing.T) {
	assert.True(t, emailInDomain("student@ostfalia.de", "ostfalia.de"))
	assert.True(t, emailInDomain("Student@OSTFALIA.DE", "ostfalia.de"))
	assert.False(t, emailInDomain("student@gmail.com", "ostfalia.de"))
	assert.False(t, emailInDomain("student@sub.ostfalia.de", "ostfalia.de"))
	assert.False(t, emailInDomain("ostfalia.de", "ostfalia.de"))
	assert.False(t, emailInDomain("@ostfalia.de", "ostfalia.de"))
	assert.False(t, emailInDomain("student@", "ostfalia.de"))
	assert.False(t, emailInDomain("", "ostfalia.de"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, validRole("student"))
	assert.True(t, validRole("teacher"))
	assert.True(t, validRole("admin"))
	assert.False(t, validRole("owner"))
	assert.False(t, validRole(""))
	assert.False(t, validRole("Admin"))
}
