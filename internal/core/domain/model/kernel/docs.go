// Package kernel provides the identifier value objects shared by the order
// domain: OrderCode, the backend's immutable order identifier, and DetailID,
// a line-item identifier that is either server-assigned (positive) or a
// client placeholder (negative) handed out by a DetailIDAllocator.
package kernel
