package service

import (
	"time"

	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/oss"
)

var (
	media     oss.Media
	tokens    *auth.TokenResolver
	accessTTL time.Duration
)

func Init(m oss.Media, t *auth.TokenResolver, ttl time.Duration) {
	media = m
	tokens = t
	accessTTL = ttl
}
