package alert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Alert {
	t.Helper()
	var a Alert
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	return a
}

func TestDecodeServerCpu(t *testing.T) {
	a := decode(t, `{
		"level": "Critical",
		"ts": 1700000000000,
		"resolved": false,
		"target": {"type": "Server", "id": "MyServer"},
		"data": {"type": "ServerCpu", "data": {"percentage": 87.187123, "id": "Something", "name": "MyInstance"}}
	}`)

	assert.Equal(t, LevelCritical, a.Level)
	assert.False(t, a.Resolved)
	assert.Equal(t, "MyServer-ServerCpu", a.Identity())

	cpu, ok := a.Data.Payload.(ServerCpu)
	require.True(t, ok)
	require.NotNil(t, cpu.Percentage)
	assert.InDelta(t, 87.187123, *cpu.Percentage, 1e-9)

	name, ok := a.Data.StringAttr("name")
	assert.True(t, ok)
	assert.Equal(t, "MyInstance", name)
	_, ok = a.Data.StringAttr("server_name")
	assert.False(t, ok)
}

func TestDecodeServerDisk(t *testing.T) {
	a := decode(t, `{
		"level": "Critical",
		"resolved": true,
		"target": {"type": "Server", "id": "MyServer"},
		"data": {"type": "ServerDisk", "data": {"used_gb": 97.1234, "total_gb": 99.9665, "path": "/my/cool/path", "name": "MyInstance"}}
	}`)

	disk, ok := a.Data.Payload.(ServerDisk)
	require.True(t, ok)
	assert.Equal(t, "/my/cool/path", disk.Path)
	require.NotNil(t, disk.UsedGB)
	require.NotNil(t, disk.TotalGB)
}

func TestDecodeStackImageUpdateAvailable(t *testing.T) {
	a := decode(t, `{
		"level": "Ok",
		"resolved": true,
		"target": {"type": "Server", "id": "MyServer"},
		"data": {"type": "StackImageUpdateAvailable", "data": {"name": "MyInstance", "server_name": "MyServer", "service": "MyService", "image": "latest"}}
	}`)

	stack, ok := a.Data.Payload.(StackImageUpdateAvailable)
	require.True(t, ok)
	assert.Equal(t, "MyService", stack.Service)
	assert.Equal(t, "latest", stack.Image)

	serverName, ok := a.Data.StringAttr("server_name")
	assert.True(t, ok)
	assert.Equal(t, "MyServer", serverName)
}

func TestDecodeMissingNumericFieldIsNil(t *testing.T) {
	a := decode(t, `{
		"level": "Warning",
		"resolved": false,
		"target": {"type": "Server", "id": "X"},
		"data": {"type": "ServerCpu", "data": {"name": "MyInstance"}}
	}`)

	cpu, ok := a.Data.Payload.(ServerCpu)
	require.True(t, ok)
	assert.Nil(t, cpu.Percentage)
}

func TestDecodeUnknownTypeFallsBackToGeneric(t *testing.T) {
	a := decode(t, `{
		"level": "Ok",
		"resolved": false,
		"target": {"type": "Deployment", "id": "Dep"},
		"data": {"type": "ServerVersionMismatch", "data": {
			"err": {"error": "boom"},
			"from": "a",
			"to": "b",
			"version": {"major": 1, "minor": 2, "patch": 3},
			"some_future_field": {"nested": true}
		}}
	}`)

	g, ok := a.Data.Payload.(Generic)
	require.True(t, ok)
	require.NotNil(t, g.Err)
	assert.Equal(t, "boom", g.Err.Error)
	require.NotNil(t, g.From)
	assert.Equal(t, "a", *g.From)
	require.NotNil(t, g.Version)
	assert.Equal(t, 3, g.Version.Patch)
	assert.Equal(t, "Dep-ServerVersionMismatch", a.Identity())
}

func TestDecodeUnknownFieldsIgnored(t *testing.T) {
	a := decode(t, `{
		"level": "Ok",
		"resolved": false,
		"extra_top_level": 42,
		"target": {"type": "Server", "id": "S"},
		"data": {"type": "ServerMem", "data": {"used_gb": 1.5, "total_gb": 8, "brand_new_field": "x"}}
	}`)

	mem, ok := a.Data.Payload.(ServerMem)
	require.True(t, ok)
	assert.InDelta(t, 1.5, *mem.UsedGB, 1e-9)
}

func TestDecodeNoneAndAbsentData(t *testing.T) {
	a := decode(t, `{
		"level": "Ok",
		"resolved": true,
		"target": {"type": "Server", "id": "S"},
		"data": {"type": "None"}
	}`)
	_, ok := a.Data.Payload.(None)
	assert.True(t, ok)

	b := decode(t, `{"level": "Ok", "resolved": true, "target": {"type": "Server", "id": "S"}}`)
	assert.Empty(t, b.Data.Type)
	assert.Nil(t, b.Data.Payload)
}
