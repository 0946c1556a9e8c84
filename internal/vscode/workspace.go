// Package vscode generates a .code-workspace file exposing the project
// root and every resolved plugin directory as workspace folders.
package vscode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/EntityProcess/allagents-sub002/internal/logging"
	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// Folder is one entry of a VSCode workspace file.
type Folder struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path"`
}

// Workspace mirrors the .code-workspace schema subset we emit.
type Workspace struct {
	Folders []Folder `json:"folders"`
}

// Generate writes the workspace file at outputPath (relative paths are
// anchored at projectDir). The project root comes first, then one folder
// per plugin in workspace order.
func Generate(outputPath, projectDir string, plugins []model.ResolvedPlugin) (string, error) {
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(projectDir, outputPath)
	}

	ws := Workspace{
		Folders: []Folder{{Path: projectDir}},
	}
	for _, p := range plugins {
		ws.Folders = append(ws.Folders, Folder{
			Name: p.PluginName,
			Path: p.LocalPath,
		})
	}

	data, err := json.MarshalIndent(&ws, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode workspace file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return "", fmt.Errorf("failed to create parent of %q: %w", outputPath, err)
	}
	// #nosec G306 - workspace file is meant to be opened by the editor
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write workspace file %q: %w", outputPath, err)
	}

	logging.Debug("generated VSCode workspace",
		logging.Path(outputPath),
		logging.Count(len(ws.Folders)),
	)
	return outputPath, nil
}
