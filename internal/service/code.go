package service

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

const ROOM_CODE_CHARS = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRoomCode 生成固定长度的大写字母数字房间码，不检查是否重复
func GenerateRoomCode(length int) string {
	code := make([]byte, length)
	max := big.NewInt(int64(len(ROOM_CODE_CHARS)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			code[i] = ROOM_CODE_CHARS[mrand.IntN(len(ROOM_CODE_CHARS))]
			continue
		}
		code[i] = ROOM_CODE_CHARS[n.Int64()]
	}

	return string(code)
}

// uniqueRoomCode 反复生成直到与现有房间不冲突，调用方需要持有写锁
func uniqueRoomCode(length int, exists func(string) bool, gen func(int) string) string {
	for {
		code := gen(length)
		if !exists(code) {
			return code
		}
	}
}
