package mds

import (
	"context"

	"github.com/goliatone/go-mdsclient/pkg/resource"
)

// Resource families of the MDS catalog.
const (
	FamilyEntities  = "entities"
	FamilyInstances = "instances"
	FamilySettings  = "settings"
)

// Entity actions.
const (
	ActionGetAdvanced        = "getAdvanced"
	ActionGetWorkInProggress = "getWorkInProggress"
	ActionGetFields          = "getFields"
	ActionGetField           = "getField"
	ActionGetEntity          = "getEntity"
	ActionSelectInstance     = "selectInstance"
	ActionDraft              = "draft"
	ActionAbandon            = "abandon"
	ActionCommit             = "commit"
)

// Instance actions.
const (
	ActionGetHistory         = "getHistory"
	ActionGetPreviousVersion = "getPreviousVersion"
)

// Settings actions.
const (
	ActionImportFile   = "importFile"
	ActionExportData   = "exportData"
	ActionSaveSettings = "saveSettings"
	ActionGetSettings  = "getSettings"
)

// ID returns a parameter bag binding the id placeholder.
func ID(id any) resource.Params {
	return resource.Params{"id": id}
}

// Service groups the typed helpers for every MDS family over one client.
type Service struct {
	Entities  Entities
	Instances Instances
	Settings  Settings
}

// New wraps client. The client's registry must contain the MDS families.
func New(client *resource.Client) *Service {
	return &Service{
		Entities:  Entities{client: client},
		Instances: Instances{client: client},
		Settings:  Settings{client: client},
	}
}

// Entities calls actions on the entities family.
type Entities struct {
	client *resource.Client
}

func (e Entities) GetAdvanced(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionGetAdvanced, params, nil)
}

// GetWorkInProggress lists the work in progress of an entity.
func (e Entities) GetWorkInProggress(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionGetWorkInProggress, params, nil)
}

// GetFields lists the fields of an entity.
func (e Entities) GetFields(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionGetFields, params, nil)
}

// GetField fetches a single field; pass its name as the "param" placeholder.
func (e Entities) GetField(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionGetField, params, nil)
}

func (e Entities) GetEntity(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionGetEntity, params, nil)
}

func (e Entities) SelectInstance(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionSelectInstance, params, nil)
}

// Draft posts entity as a draft. Its id field binds the id placeholder.
func (e Entities) Draft(ctx context.Context, params resource.Params, entity any) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionDraft, params, entity)
}

func (e Entities) Abandon(ctx context.Context, params resource.Params, entity any) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionAbandon, params, entity)
}

func (e Entities) Commit(ctx context.Context, params resource.Params, entity any) (*resource.Call, error) {
	return e.client.Invoke(ctx, FamilyEntities, ActionCommit, params, entity)
}

// Instances calls actions on the instances family.
type Instances struct {
	client *resource.Client
}

func (i Instances) GetHistory(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return i.client.Invoke(ctx, FamilyInstances, ActionGetHistory, params, nil)
}

func (i Instances) GetPreviousVersion(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return i.client.Invoke(ctx, FamilyInstances, ActionGetPreviousVersion, params, nil)
}

// Settings calls actions on the settings family.
type Settings struct {
	client *resource.Client
}

func (s Settings) ImportFile(ctx context.Context, params resource.Params, payload any) (*resource.Call, error) {
	return s.client.Invoke(ctx, FamilySettings, ActionImportFile, params, payload)
}

func (s Settings) ExportData(ctx context.Context, params resource.Params, payload any) (*resource.Call, error) {
	return s.client.Invoke(ctx, FamilySettings, ActionExportData, params, payload)
}

func (s Settings) SaveSettings(ctx context.Context, params resource.Params, settings any) (*resource.Call, error) {
	return s.client.Invoke(ctx, FamilySettings, ActionSaveSettings, params, settings)
}

func (s Settings) GetSettings(ctx context.Context, params resource.Params) (*resource.Call, error) {
	return s.client.Invoke(ctx, FamilySettings, ActionGetSettings, params, nil)
}
