// Package files holds validators for path-valued settings.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

func pathField(fl validator.FieldLevel) string {
	field := fl.Field()
	if field.Kind() != reflect.String {
		panic(fmt.Sprintf("input field name is not a string: %s", fl.FieldName()))
	}
	return field.String()
}

// IsReadableFile passes when the path names a regular file this process can open.
func IsReadableFile(fl validator.FieldLevel) bool {
	path := pathField(fl)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// IsYAMLFile passes when the path names a file that decodes as YAML. An
// empty file counts as valid.
func IsYAMLFile(fl validator.FieldLevel) bool {
	f, err := os.Open(pathField(fl))
	if err != nil {
		return false
	}
	defer f.Close()

	var doc any
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return true
}
