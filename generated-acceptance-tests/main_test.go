package acceptance_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var rorvBinary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "rorv-acceptance-*")
	if err != nil {
		panic(err)
	}

	rorvBinary = filepath.Join(tmpDir, "rorv")
	build := exec.Command("go", "build", "-o", rorvBinary, "github.com/eykd/rorv")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		os.RemoveAll(tmpDir)
		panic("failed to build rorv binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}
