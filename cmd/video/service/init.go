package service

import "VidTube.com/pkg/oss"

var media oss.Media

func Init(m oss.Media) {
	media = m
}
