// internal/services/id.go
package services

import (
	"fmt"

	"github.com/google/uuid"
)

// newEntityID 生成带类型前缀的唯一实体ID
func newEntityID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
