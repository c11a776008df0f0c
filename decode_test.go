// FILE: lixenwraith/hiconf/decode_test.go
package hiconf

import (
	"errors"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeModel struct {
	Dim   int `toml:"dim"`
	Heads int `toml:"heads"`
}

type decodeTrain struct {
	Epochs    int         `toml:"epochs"`
	BatchSize int         `toml:"batch_size"`
	Model     decodeModel `toml:"model"`
}

var errTooFewEpochs = errors.New("epochs must be at least 10")

func (c *decodeTrain) Validate() error {
	if c.Epochs < 10 {
		return errTooFewEpochs
	}
	return nil
}

type decodeService struct {
	Timeout  time.Duration `toml:"timeout"`
	Bind     net.IP        `toml:"bind"`
	Subnet   net.IPNet     `toml:"subnet"`
	Endpoint url.URL       `toml:"endpoint"`
	Tags     []string      `toml:"tags"`
	Workers  int           `toml:"workers"`
}

func TestDecode(t *testing.T) {
	reg := trainRegistry(t)

	t.Run("WholeConfiguration", func(t *testing.T) {
		res, err := resolveArgs(t, reg, "model=Vit", "--epochs=20")
		require.NoError(t, err)

		var cfg decodeTrain
		require.NoError(t, res.Decode(&cfg))
		assert.Equal(t, decodeTrain{
			Epochs:    20,
			BatchSize: 32,
			Model:     decodeModel{Dim: 768, Heads: 12},
		}, cfg)
	})

	t.Run("ValidateFailure", func(t *testing.T) {
		res, err := resolveArgs(t, reg, "--config=Quick")
		require.NoError(t, err)

		var cfg decodeTrain
		err = res.Decode(&cfg)
		var ce *ConstructionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "Quick", ce.Type)
		assert.ErrorIs(t, err, errTooFewEpochs)
		assert.ErrorIs(t, err, ErrSchemaConstruction)
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		res, err := resolveArgs(t, reg)
		require.NoError(t, err)

		var wrong struct {
			Model int `toml:"model"`
		}
		err = res.Decode(&wrong)
		assert.ErrorIs(t, err, ErrSchemaConstruction)

		var notPtr decodeTrain
		assert.ErrorIs(t, res.Decode(notPtr), ErrSchemaConstruction)
	})

	t.Run("Scan", func(t *testing.T) {
		res, err := resolveArgs(t, reg, "model=Vit")
		require.NoError(t, err)

		var model decodeModel
		require.NoError(t, res.Scan("model", &model))
		assert.Equal(t, decodeModel{Dim: 768, Heads: 12}, model)

		var n int
		assert.Error(t, res.Scan("epochs", &n))
		assert.Error(t, res.Scan("missing", &model))
	})
}

func TestDecodeHooks(t *testing.T) {
	defaults := decodeService{
		Timeout:  30 * time.Second,
		Bind:     net.ParseIP("10.0.0.1"),
		Endpoint: url.URL{Scheme: "https", Host: "api.local", Path: "/v1"},
		Tags:     []string{"a", "b"},
		Workers:  4,
	}
	_, subnet, _ := net.ParseCIDR("10.0.0.0/8")
	defaults.Subnet = *subnet

	root, err := Reflect(defaults)
	require.NoError(t, err)
	reg := classify(t, root)

	t.Run("RoundTripsDefaults", func(t *testing.T) {
		res, err := resolveArgs(t, reg)
		require.NoError(t, err)

		var svc decodeService
		require.NoError(t, res.Decode(&svc))
		assert.Equal(t, 30*time.Second, svc.Timeout)
		assert.True(t, svc.Bind.Equal(net.ParseIP("10.0.0.1")))
		assert.Equal(t, "10.0.0.0/8", svc.Subnet.String())
		assert.Equal(t, "https://api.local/v1", svc.Endpoint.String())
		assert.Equal(t, []string{"a", "b"}, svc.Tags)
	})

	t.Run("OverriddenStrings", func(t *testing.T) {
		res, err := resolveArgs(t, reg, "--timeout=1m30s", "--bind=::1", "--endpoint=http://localhost:8080")
		require.NoError(t, err)

		var svc decodeService
		require.NoError(t, res.Decode(&svc))
		assert.Equal(t, 90*time.Second, svc.Timeout)
		assert.True(t, svc.Bind.Equal(net.IPv6loopback))
		assert.Equal(t, "localhost:8080", svc.Endpoint.Host)
	})

	t.Run("InvalidStrings", func(t *testing.T) {
		for _, arg := range []string{"--timeout=soon", "--bind=not-an-ip", "--subnet=10.0.0.0/99"} {
			res, err := resolveArgs(t, reg, arg)
			require.NoError(t, err, "strings are stored verbatim")

			var svc decodeService
			assert.ErrorIs(t, res.Decode(&svc), ErrSchemaConstruction, arg)
		}
	})
}

func TestNavigateToPath(t *testing.T) {
	nested := map[string]any{
		"model": map[string]any{"dim": int64(1)},
	}
	assert.Equal(t, nested, navigateToPath(nested, ""))
	assert.Equal(t, int64(1), navigateToPath(nested, "model.dim"))
	assert.Equal(t, map[string]any{"dim": int64(1)}, navigateToPath(nested, "model."))
	assert.Nil(t, navigateToPath(nested, "model.dim.x"))
	assert.Nil(t, navigateToPath(nested, "nope"))
}
