package model

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrCompanyNameRequired = errors.New("nome da empresa é obrigatório")
	ErrCNPJRequired        = errors.New("CNPJ é obrigatório")
	ErrEmailRequired       = errors.New("email é obrigatório")
	ErrNameRequired        = errors.New("nome é obrigatório")
	ErrRoleRequired        = errors.New("cargo é obrigatório")
	ErrTitleRequired       = errors.New("título é obrigatório")
	ErrDescriptionRequired = errors.New("descrição é obrigatória")
	ErrPersonRequired      = errors.New("selecione uma pessoa para atribuir a atividade")
	ErrUnknownPerson       = errors.New("pessoa não encontrada")
	ErrDeadlineRequired    = errors.New("prazo final é obrigatório")
	ErrDeadlineBeforeStart = errors.New("o prazo final deve ser posterior à data de início")
	ErrInvalidStatus       = errors.New("status inválido")
	ErrOverdueIsAutomatic  = errors.New("o status atrasada é definido automaticamente")
	ErrInvalidTimeOfDay    = errors.New("horário deve estar no formato HH:MM")
	ErrPersonHasTasks      = errors.New("a pessoa possui atividades atribuídas")
	ErrNoFieldsToUpdate    = errors.New("nenhum campo para atualizar")
)

var validationErrors = []error{
	ErrCompanyNameRequired,
	ErrCNPJRequired,
	ErrEmailRequired,
	ErrNameRequired,
	ErrRoleRequired,
	ErrTitleRequired,
	ErrDescriptionRequired,
	ErrPersonRequired,
	ErrUnknownPerson,
	ErrDeadlineRequired,
	ErrDeadlineBeforeStart,
	ErrInvalidStatus,
	ErrOverdueIsAutomatic,
	ErrInvalidTimeOfDay,
	ErrPersonHasTasks,
	ErrNoFieldsToUpdate,
}

// IsValidation reports whether err was rejected before any state change.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
