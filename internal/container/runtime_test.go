// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	onPath   map[string]bool // binary -> LookPath succeeds
	runnable map[string]bool // "bin arg1 arg2" -> RunSilent succeeds
	piped    func(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnable[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if m.piped != nil {
		return m.piped(name, args, stdin, stdout, stderr)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name:     "docker available",
			exec:     &mockExecutor{onPath: map[string]bool{"docker": true}, runnable: map[string]bool{"docker info": true}},
			wantName: "docker",
		},
		{
			name:     "podman fallback when docker missing",
			exec:     &mockExecutor{onPath: map[string]bool{"podman": true}, runnable: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
		{
			name: "docker daemon down, podman works",
			exec: &mockExecutor{
				onPath:   map[string]bool{"docker": true, "podman": true},
				runnable: map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				onPath:   map[string]bool{"docker": true, "podman": true},
				runnable: map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(context.Background(), tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	const image = "doc2latex/libreoffice:latest"
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name: "docker image exists",
			mkRT: func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			cmds: map[string]bool{"docker image inspect " + image: true},
		},
		{
			name:    "docker image missing",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			wantErr: true,
		},
		{
			name: "podman image exists",
			mkRT: func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			cmds: map[string]bool{"podman image exists " + image: true},
		},
		{
			name:    "podman image missing",
			mkRT:    func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := tt.mkRT(&mockExecutor{runnable: tt.cmds})
			err := rt.ImageExists(context.Background(), image)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), image)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRun_PipesWithoutNetwork(t *testing.T) {
	var gotName string
	var gotArgs []string
	exec := &mockExecutor{
		piped: func(name string, args []string, stdin io.Reader, stdout, _ io.Writer) error {
			gotName, gotArgs = name, args
			_, err := io.Copy(stdout, stdin)
			return err
		},
	}

	var out bytes.Buffer
	err := newDockerRuntime(exec).Run(context.Background(), "img:1", strings.NewReader("doc bytes"), &out)
	require.NoError(t, err)
	assert.Equal(t, "docker", gotName)
	assert.Equal(t, []string{"run", "--rm", "-i", "--network", "none", "img:1"}, gotArgs)
	assert.Equal(t, "doc bytes", out.String())
}

func TestRun_ErrorCarriesStderr(t *testing.T) {
	exec := &mockExecutor{
		piped: func(_ string, _ []string, _ io.Reader, _, stderr io.Writer) error {
			_, _ = io.WriteString(stderr, "  soffice: source file could not be loaded\n")
			return errors.New("exit status 1")
		},
	}

	err := newPodmanRuntime(exec).Run(context.Background(), "img:1", strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running podman container img:1")
	assert.Contains(t, err.Error(), "source file could not be loaded")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "", tail("  \n", 10))
	assert.Equal(t, "abc", tail(" abc ", 10))
	assert.Equal(t, "def", tail("abcdef", 3))
}
