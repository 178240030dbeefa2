package etcd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceKey(t *testing.T) {
	inst := Instance{Name: "rbacadmin", Env: "dev", Version: "v1", IP: "10.0.0.3", Port: "8080"}
	assert.Equal(t, "/services/rbacadmin/dev/v1/10.0.0.3:8080", inst.Key())

	var back Instance
	require.NoError(t, json.Unmarshal([]byte(inst.Value()), &back))
	assert.Equal(t, inst, back)
}

func TestPortOf(t *testing.T) {
	assert.Equal(t, "8080", PortOf(":8080"))
	assert.Equal(t, "9000", PortOf("0.0.0.0:9000"))
	assert.Equal(t, "0", PortOf(""))
	assert.Equal(t, "0", PortOf("nonsense"))
}
