package openflow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试cookie编解码往返：任意规则ID编码后解码得到原值
func TestCookieRoundTrip(t *testing.T) {
	for _, id := range []uint32{0, 1, 7, 42, 1 << 20, math.MaxUint32} {
		cookie := EncodeCookie(id)
		decoded, ok := DecodeCookie(cookie)
		require.True(t, ok, "cookie for id %d must decode", id)
		assert.Equal(t, id, decoded)
	}
}

// 测试不带本后端标记的cookie被拒绝
func TestCookieForeignRejected(t *testing.T) {
	for _, cookie := range []uint64{0, 0x1234, math.MaxUint64, uint64(7)} {
		_, ok := DecodeCookie(cookie)
		assert.False(t, ok, "foreign cookie %#x must not decode", cookie)
	}
}

// 测试不同规则ID产生不同cookie
func TestCookieDistinct(t *testing.T) {
	assert.NotEqual(t, EncodeCookie(1), EncodeCookie(2))
}
