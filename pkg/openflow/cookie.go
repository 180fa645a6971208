package openflow

// cookie的高32位是本后端的标记，低32位是规则ID
// 带其他标记的cookie不是本后端下发的，解码时直接拒绝
const cookieMarker uint64 = 0x4e43_4f46 // "NCOF"

// EncodeCookie 将规则ID确定性编码为flow_mod的cookie
func EncodeCookie(ruleID uint32) uint64 {
	return cookieMarker<<32 | uint64(ruleID)
}

// DecodeCookie 从cookie中还原规则ID
// 标记不匹配时返回false，调用方应当忽略该通知
func DecodeCookie(cookie uint64) (uint32, bool) {
	if cookie>>32 != cookieMarker {
		return 0, false
	}
	return uint32(cookie), true
}
