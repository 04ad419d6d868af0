package domain

import "time"

type Member struct {
	ID          int       `json:"id"`
	PlateNumber string    `json:"plate_number"`
	OwnerName   string    `json:"owner_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateMemberDTO struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	OwnerName   string `json:"owner_name" binding:"required"`
}

type MembershipCheckDTO struct {
	PlateNumber string `json:"plate_number"`
	IsMember    bool   `json:"is_member"`
}
