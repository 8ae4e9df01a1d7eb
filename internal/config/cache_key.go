package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FineCatalogKey returns the cache key for a school's fee fine catalog.
func (r *CacheKeyStruct) FineCatalogKey(schoolCode string) string {
	return fmt.Sprintf("school:%s:fee_fines", schoolCode)
}

var CacheKey = NewCacheKeyStruct()
