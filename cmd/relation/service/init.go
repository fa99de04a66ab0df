package service

import "VidTube.com/pkg/relation"

var toggler *relation.Toggler

func Init(t *relation.Toggler) {
	toggler = t
}
