// Package installer wraps a frozen application into a native installer with
// CPack: it renders CPackConfig.cmake for the platform's generator (WIX for
// MSI, DragNDrop for DMG), runs cpack, finds the produced artifact and
// publishes it into the dist folder next to a checksum manifest.
package installer
