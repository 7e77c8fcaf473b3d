package iocli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	assert.NotNil(t, stdio)
}

func TestStream_Print(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader(""), &out)

	s.Println("hello", "world")
	s.Printf("test %d %s\n", 1, "abc")
	n, err := s.Write([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, "hello world\ntest 1 abc\nraw", out.String())
}

// Ввод читается построчно из одного буфера
func TestStream_ReadInput(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader("a@b.com\n  Ann  \nSecret1!"), &out)

	email, err := s.ReadInput("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	name, err := s.ReadInput("Name: ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	// Последняя строка без перевода строки
	password, err := s.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "Secret1!", password)

	_, err = s.ReadInput("More: ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "Email: Name: Password: More: ", out.String())
}
