package paillier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/pebench-go/pkg/pebench/bench"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/paillier"
)

const testBits = 512

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := paillier.New(paillier.WithBits(testBits))
	require.NoError(t, s.DoSetup(ctx, nil, nil))

	kp, err := s.GenerateKeyPair(ctx)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		pt, err := s.GeneratePlainText()
		require.NoError(t, err)
		ct, err := s.Encrypt(ctx, pt, kp.Public)
		require.NoError(t, err)
		got, err := s.Decrypt(ctx, ct, kp.Secret)
		require.NoError(t, err)
		assert.True(t, pt.Equal(got))
	}
}

func TestSetupRejectsTinyKeys(t *testing.T) {
	err := paillier.New(paillier.WithBits(64)).DoSetup(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestWrongTypes(t *testing.T) {
	ctx := context.Background()
	s := paillier.New(paillier.WithBits(testBits))
	_, err := s.GenerateKeyPair(ctx)
	assert.True(t, errors.Is(err, scheme.ErrNotSetUp))
	require.NoError(t, s.DoSetup(ctx, nil, nil))

	kp, err := s.GenerateKeyPair(ctx)
	require.NoError(t, err)
	pt, err := s.GeneratePlainText()
	require.NoError(t, err)

	_, err = s.Encrypt(ctx, pt, kp.Secret)
	assert.True(t, errors.Is(err, scheme.ErrKeyType))
	_, err = s.Encrypt(ctx, scheme.MessageBlock{pt}, kp.Public)
	assert.True(t, errors.Is(err, scheme.ErrPlainTextType))
	_, err = s.Decrypt(ctx, "ciphertext", kp.Secret)
	assert.True(t, errors.Is(err, scheme.ErrKeyType))
}

func TestBenchmark(t *testing.T) {
	cfg, err := bench.NewKeyPairConfigBuilder().WithCycles(3).Build()
	require.NoError(t, err)

	res, err := bench.NewRunner().RunEncryption(context.Background(), cfg, func() scheme.EncryptionBenchmarkable {
		return paillier.New(paillier.WithBits(testBits))
	})
	require.NoError(t, err)
	assert.Equal(t, paillier.Name, res.Scheme)
	assert.Equal(t, 3, res.Count(bench.OpEncrypt))
	assert.Equal(t, 3, res.Count(bench.OpDecrypt))
}
