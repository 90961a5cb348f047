package models

import "fmt"

// ActorKind - тип инициатора действия в журнале инцидента
type ActorKind string

const (
	ActorSystem   ActorKind = "system"
	ActorAdmin    ActorKind = "admin"
	ActorHardware ActorKind = "hardware"
	ActorOperator ActorKind = "operator"
)

// Actor - теговый вариант вместо свободного текста в performed_by
type Actor struct {
	Kind ActorKind `json:"kind"`
	Ref  string    `json:"ref,omitempty"`
}

func SystemActor() Actor {
	return Actor{Kind: ActorSystem}
}

func AdminActor(id string) Actor {
	return Actor{Kind: ActorAdmin, Ref: id}
}

func HardwareActor(deviceUID string) Actor {
	return Actor{Kind: ActorHardware, Ref: deviceUID}
}

func OperatorActor(id string) Actor {
	return Actor{Kind: ActorOperator, Ref: id}
}

func (a Actor) String() string {
	if a.Ref == "" {
		return string(a.Kind)
	}
	return fmt.Sprintf("%s:%s", a.Kind, a.Ref)
}
