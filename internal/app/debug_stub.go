//go:build !debug

package app

func publishDebug(*App) {}

func debugEnabled() bool { return false }

func debugPublished() bool { return false }
