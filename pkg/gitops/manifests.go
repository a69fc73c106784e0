/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package gitops

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// LoadManifests decodes manifest objects from path, a single YAML file or a
// directory of .yaml and .yml files read in lexical order. Objects are
// returned in file and document order; empty or comment-only documents are
// skipped.
func LoadManifests(path string) ([]*unstructured.Unstructured, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("manifest source %s not found", path), err)
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("failed to read manifest directory %s", path), err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("no manifest files in %s", path))
	}

	var objects []*unstructured.Unstructured
	for _, file := range files {
		objs, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		objects = append(objects, objs...)
	}
	return objects, nil
}

// loadFile splits a multi-document YAML file and decodes each document.
func loadFile(path string) ([]*unstructured.Unstructured, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("failed to open manifest %s", path), err)
	}
	defer f.Close()

	var objects []*unstructured.Unstructured
	reader := utilyaml.NewYAMLReader(bufio.NewReader(f))
	for doc := 0; ; doc++ {
		raw, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
				fmt.Sprintf("failed to read document %d of %s", doc, path), err)
		}

		var content map[string]any
		if err := yaml.Unmarshal(raw, &content); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
				fmt.Sprintf("failed to decode document %d of %s", doc, path), err)
		}
		if len(content) == 0 {
			continue
		}

		obj := &unstructured.Unstructured{Object: content}
		if obj.GetKind() == "" || obj.GetName() == "" {
			return nil, apperrors.New(apperrors.ErrCodeConfiguration,
				fmt.Sprintf("document %d of %s has no kind or name", doc, path))
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
