package net

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
)

// Scheme prefixes share links that open a viewer, e.g.
// productcanvas://192.168.1.20:8888.
const Scheme = "productcanvas://"

// GetOutgoingIP finds the preferred local IP address to put in a share link.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route out, fall back to checking local interfaces.
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// getLocalIPFallback is used on networks without internet access.
func getLocalIPFallback() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	log.Println("[PREVIEW] No suitable local IP found, share link will use loopback")
	return "127.0.0.1", nil
}

// ShareLink builds the link a viewer opens to follow an editor.
func ShareLink(host string, port int) string {
	return Scheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// ParseLink extracts host:port from a share link.
func ParseLink(link string) (string, error) {
	if !strings.HasPrefix(link, Scheme) {
		return "", fmt.Errorf("not a %s link: %q", Scheme, link)
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, Scheme), "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("bad share link %q: %w", link, err)
	}
	return addr, nil
}
