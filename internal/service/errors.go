package service

import "errors"

// Таксономия ошибок координатора. Каждое отклонение команды оставляет
// состояние неизменным.
var (
	ErrUnknownDevice  = errors.New("unknown device")
	ErrInactiveDevice = errors.New("device is not active")

	ErrIncidentNotFound  = errors.New("incident not found")
	ErrAmbulanceNotFound = errors.New("ambulance not found")
	ErrHospitalNotFound  = errors.New("hospital not found")

	ErrInvalidTransition = errors.New("invalid incident status transition")

	// Восстановимая: инцидент остается confirmed и виден операторам
	ErrNoAmbulanceAvailable = errors.New("no ambulance available within radius")

	// Транзиентная: проигравшая сторона повторяет выбор машины
	ErrReservationConflict = errors.New("ambulance reservation conflict")
)
