// Package redisrepo stores users and bookings as Redis hashes.
//
// Layout:
//
//	user:{id}             hash   account fields
//	user:email:{email}    string user id, written with SETNX
//	booking:{id}          hash   booking fields
//	user:{id}:bookings    zset   booking ids scored by created_at (unix micros)
package redisrepo

import (
	"fmt"

	"github.com/google/uuid"
)

func userKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func emailKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

func bookingKey(id uuid.UUID) string {
	return fmt.Sprintf("booking:%s", id)
}

func userBookingsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:bookings", userID)
}
