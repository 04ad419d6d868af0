package service

import (
	"context"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
)

// MemberService manages the known-vehicle registry consulted on every access
// event.
type MemberService struct {
	memberRepo repository.MemberRepository
}

func NewMemberService(memberRepo repository.MemberRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

func (s *MemberService) AddMember(ctx context.Context, dto domain.CreateMemberDTO) (*domain.Member, error) {
	member := &domain.Member{
		PlateNumber: dto.PlateNumber,
		OwnerName:   dto.OwnerName,
	}
	return s.memberRepo.Create(ctx, member)
}

func (s *MemberService) GetAllMembers(ctx context.Context) ([]domain.Member, error) {
	return s.memberRepo.FindAll(ctx)
}

func (s *MemberService) CheckPlate(ctx context.Context, plateNumber string) (*domain.MembershipCheckDTO, error) {
	isMember, err := s.memberRepo.IsMember(ctx, plateNumber)
	if err != nil {
		return nil, err
	}
	return &domain.MembershipCheckDTO{PlateNumber: plateNumber, IsMember: isMember}, nil
}
