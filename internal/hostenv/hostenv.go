// Package hostenv defines the ambient collaborator interface the VM
// calls into for filesystem and logging operations (spec.md §6.3). The
// VM core never touches os/io directly; natives route through HostEnv so
// embedders can sandbox or fake these operations.
package hostenv

import (
	"os"
	"path/filepath"

	"github.com/funvibe/funcscript/internal/value"
)

// HostEnv is consulted by the file/log natives (internal/native). When
// nil, those natives return the corresponding 26xx error instead of
// touching the filesystem.
type HostEnv interface {
	ReadText(path string) (string, *value.FsError)
	Exists(path string) (bool, *value.FsError)
	IsFile(path string) (bool, *value.FsError)
	ListDir(path string) ([]string, *value.FsError)
	Log(line string)
}

// OS is the default HostEnv backed by the local filesystem and stderr,
// used by the CLI (cmd/funcscript) and embed.Machine when no HostEnv is
// supplied explicitly.
type OS struct{}

func (OS) ReadText(path string) (string, *value.FsError) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", value.NewError(2601, err.Error())
	}
	return string(b), nil
}

func (OS) Exists(path string) (bool, *value.FsError) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, value.NewError(2602, err.Error())
}

func (OS) IsFile(path string) (bool, *value.FsError) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, value.NewError(2603, err.Error())
	}
	return !info.IsDir(), nil
}

func (OS) ListDir(path string) ([]string, *value.FsError) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, value.NewError(2604, err.Error())
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, filepath.Join(path, e.Name()))
	}
	return names, nil
}

func (OS) Log(line string) {
	os.Stderr.WriteString(line)
	os.Stderr.WriteString("\n")
}
