package game

import (
	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// GenShortID 取 UUID 末尾 8 位，足够在单个房间内区分
func GenShortID() string {
	id := GenID()
	return id[len(id)-8:]
}
