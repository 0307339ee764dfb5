// Package util provides small generic helpers shared across prockit packages.
package util
