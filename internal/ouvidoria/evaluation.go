package ouvidoria

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/resource"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

// AvaliacaoAPI é o sub-recurso de avaliação de uma ocorrência.
type AvaliacaoAPI interface {
	Get(ctx context.Context, segments ...string) (Avaliacao, error)
	Create(ctx context.Context, payload any) (json.RawMessage, error)
	Update(ctx context.Context, key string, payload any) (json.RawMessage, error)
}

// EvaluationMode indica se o envio cria ou edita a avaliação.
type EvaluationMode string

const (
	ModeCreate EvaluationMode = "create"
	ModeEdit   EvaluationMode = "edit"
)

const (
	msgEvalServico   = "Serviço vinculado à ocorrência não encontrado."
	msgEvalCPF       = "CPF do morador não disponível para a avaliação."
	msgEvalNotaServ  = "Informe uma nota do serviço entre 0 e 10."
	msgEvalNotaTempo = "Informe uma nota do tempo de atendimento entre 0 e 10."
	msgEvalLoad      = "Não foi possível carregar a avaliação."
	msgEvalSave      = "Não foi possível salvar a avaliação."
	msgEvalCreated   = "Avaliação registrada com sucesso."
	msgEvalUpdated   = "Avaliação atualizada com sucesso."
)

// EvaluationFields são os campos do formulário de avaliação.
var EvaluationFields = []resource.Field{
	{Name: "cod_servico", Label: "Serviço", Kind: resource.KindNumber},
	{Name: "cpf_morador", Label: "CPF do morador", Kind: resource.KindText},
	{Name: "nota_serv", Label: "Nota do serviço", Kind: resource.KindNumber, Required: true},
	{Name: "nota_tempo", Label: "Nota do tempo de atendimento", Kind: resource.KindNumber, Required: true},
	{Name: "opiniao", Label: "Opinião", Kind: resource.KindTextarea},
}

type avaliacaoPayload struct {
	CodOcorrencia int     `json:"cod_ocorrencia" validate:"gt=0"`
	CodServico    int     `json:"cod_servico" validate:"gt=0"`
	CPFMorador    string  `json:"cpf_morador" validate:"required"`
	NotaServ      int     `json:"nota_serv" validate:"gte=0,lte=10"`
	NotaTempo     int     `json:"nota_tempo" validate:"gte=0,lte=10"`
	Opiniao       *string `json:"opiniao"`
}

// Evaluation conduz a avaliação de uma ocorrência finalizada: GET decide entre criar e editar.
type Evaluation struct {
	api       AvaliacaoAPI
	viewerCPF string
	logger    zerolog.Logger
	modal     *resource.Modal[int]

	mu         sync.Mutex
	ocorrencia Ocorrencia
	servicoID  int
	existing   *Avaliacao
	state      resource.State
}

// NewEvaluation cria o fluxo para o morador identificado por viewerCPF.
func NewEvaluation(api AvaliacaoAPI, viewerCPF string) *Evaluation {
	return &Evaluation{
		api:       api,
		viewerCPF: util.OnlyDigits(viewerCPF),
		logger:    log.With().Str("component", "evaluation").Logger(),
		modal:     resource.NewModal[int](EvaluationFields),
	}
}

// CanEvaluate informa se a ocorrência pode ser avaliada por quem a visualiza.
func CanEvaluate(o Ocorrencia, isFuncionario bool) bool {
	return !isFuncionario && o.TipoStatus.Finalizada()
}

// ResolveServico descobre o serviço vinculado: o da ocorrência ou o primeiro que a atende.
func ResolveServico(o Ocorrencia, servicos []Servico) int {
	if o.CodServico != nil && *o.CodServico > 0 {
		return *o.CodServico
	}
	for _, s := range servicos {
		if s.CodOcorrencia == o.CodOco {
			return s.CodServico
		}
	}
	return 0
}

// Modal expõe o diálogo de avaliação.
func (e *Evaluation) Modal() *resource.Modal[int] {
	return e.modal
}

// State devolve carregamento, gravação e mensagens.
func (e *Evaluation) State() resource.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Mode informa se o próximo envio cria ou edita.
func (e *Evaluation) Mode() EvaluationMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.existing != nil {
		return ModeEdit
	}
	return ModeCreate
}

// Existing devolve a avaliação já registrada, quando houver.
func (e *Evaluation) Existing() (Avaliacao, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.existing == nil {
		return Avaliacao{}, false
	}
	return *e.existing, true
}

// Ocorrencia devolve a ocorrência em avaliação.
func (e *Evaluation) Ocorrencia() Ocorrencia {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ocorrencia
}

// Open abre o formulário para a ocorrência. 404 significa modo de criação; outras falhas
// deixam o formulário aberto em branco com a mensagem de erro.
func (e *Evaluation) Open(ctx context.Context, o Ocorrencia, servicoID int) error {
	e.mu.Lock()
	e.ocorrencia, e.servicoID, e.existing = o, servicoID, nil
	e.state = resource.State{Loading: true}
	e.mu.Unlock()

	base := e.baseForm(o, servicoID)
	e.modal.OpenFor(o.CodOco, base)

	found, err := e.api.Get(ctx, "ocorrencia", strconv.Itoa(o.CodOco))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Loading = false
	if err != nil {
		if resource.IsCancelled(err) || errors.Is(err, backend.ErrNotFound) {
			return nil
		}
		e.logger.Warn().Err(err).Int("cod_oco", o.CodOco).Msg("falha ao carregar avaliação")
		e.state.Error = resource.Message(err, msgEvalLoad)
		return err
	}

	// Resposta sem cod_aval não identifica o registro: segue em modo cadastro.
	if found.CodAval > 0 {
		e.existing = &found
	} else {
		e.logger.Warn().Int("cod_oco", o.CodOco).Msg("avaliação sem cod_aval, seguindo como cadastro")
	}
	form := base.Clone()
	if found.CodServico > 0 {
		setIf(form, "cod_servico", strconv.Itoa(found.CodServico))
	}
	if cpf := strings.TrimSpace(found.CPFMorador); cpf != "" {
		setIf(form, "cpf_morador", cpf)
	}
	setIf(form, "nota_serv", strconv.Itoa(found.NotaServ))
	setIf(form, "nota_tempo", strconv.Itoa(found.NotaTempo))
	setIf(form, "opiniao", deref(found.Opiniao))
	e.modal.OpenFor(o.CodOco, form)
	return nil
}

func (e *Evaluation) baseForm(o Ocorrencia, servicoID int) *resource.Form {
	form := resource.NewForm(EvaluationFields)
	if servicoID <= 0 && o.CodServico != nil {
		servicoID = *o.CodServico
	}
	if servicoID > 0 {
		setIf(form, "cod_servico", strconv.Itoa(servicoID))
	}
	cpf := strings.TrimSpace(o.CPFMorador)
	if cpf == "" {
		cpf = e.viewerCPF
	}
	setIf(form, "cpf_morador", cpf)
	return form
}

// ClearMessages limpa erro e sucesso.
func (e *Evaluation) ClearMessages() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Error, e.state.Success = "", ""
}

// Close fecha o formulário e descarta o estado.
func (e *Evaluation) Close() {
	e.modal.Close()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.existing = nil
	e.state.Loading = false
}

// Submit valida e envia a avaliação. Notas fora de 0 a 10 bloqueiam o envio sem chamada remota.
func (e *Evaluation) Submit(ctx context.Context, form *resource.Form) (Avaliacao, error) {
	e.mu.Lock()
	if e.state.Saving {
		e.mu.Unlock()
		return Avaliacao{}, resource.ErrBusy
	}
	e.state.Saving = true
	e.state.Error, e.state.Success = "", ""
	o, servicoHint, existing := e.ocorrencia, e.servicoID, e.existing
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.state.Saving = false
		e.mu.Unlock()
	}()

	if form == nil {
		form = e.modal.Draft()
	} else {
		target, _ := e.modal.Target()
		e.modal.OpenFor(target, form)
	}

	payload, err := e.validate(form, o, servicoHint)
	if err != nil {
		e.setError(resource.Message(err, msgEvalSave))
		return Avaliacao{}, err
	}

	var raw json.RawMessage
	if existing != nil {
		raw, err = e.api.Update(ctx, strconv.Itoa(existing.CodAval), payload)
	} else {
		raw, err = e.api.Create(ctx, payload)
	}
	if err != nil {
		if !resource.IsCancelled(err) {
			e.logger.Warn().Err(err).Int("cod_oco", o.CodOco).Msg("falha ao salvar avaliação")
			e.setError(resource.Message(err, msgEvalSave))
		}
		return Avaliacao{}, err
	}

	saved := Avaliacao{
		CodOcorrencia: payload.CodOcorrencia,
		CodServico:    payload.CodServico,
		CPFMorador:    payload.CPFMorador,
		NotaServ:      payload.NotaServ,
		NotaTempo:     payload.NotaTempo,
		Opiniao:       payload.Opiniao,
	}
	if existing != nil {
		saved.CodAval = existing.CodAval
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		var resp Avaliacao
		if err := json.Unmarshal(trimmed, &resp); err == nil && resp.CodAval > 0 {
			saved.CodAval = resp.CodAval
		}
	}

	e.mu.Lock()
	if existing != nil {
		e.state.Success = msgEvalUpdated
	} else {
		e.state.Success = msgEvalCreated
	}
	e.existing = nil
	e.mu.Unlock()
	e.modal.Close()
	return saved, nil
}

func (e *Evaluation) validate(form *resource.Form, o Ocorrencia, servicoHint int) (avaliacaoPayload, error) {
	var zero avaliacaoPayload

	servicoRaw := form.Trimmed("cod_servico")
	if servicoRaw == "" {
		switch {
		case o.CodServico != nil && *o.CodServico > 0:
			servicoRaw = strconv.Itoa(*o.CodServico)
		case servicoHint > 0:
			servicoRaw = strconv.Itoa(servicoHint)
		}
	}
	servicoID, err := strconv.Atoi(servicoRaw)
	if err != nil || servicoID <= 0 {
		return zero, resource.Invalid("cod_servico", msgEvalServico)
	}

	cpf := form.Trimmed("cpf_morador")
	if cpf == "" {
		cpf = strings.TrimSpace(o.CPFMorador)
	}
	if cpf == "" {
		cpf = e.viewerCPF
	}
	if cpf == "" {
		return zero, resource.Invalid("cpf_morador", msgEvalCPF)
	}

	notaServ, ok := parseNota(form.Trimmed("nota_serv"))
	if !ok {
		return zero, resource.Invalid("nota_serv", msgEvalNotaServ)
	}
	notaTempo, ok := parseNota(form.Trimmed("nota_tempo"))
	if !ok {
		return zero, resource.Invalid("nota_tempo", msgEvalNotaTempo)
	}

	payload := avaliacaoPayload{
		CodOcorrencia: o.CodOco,
		CodServico:    servicoID,
		CPFMorador:    cpf,
		NotaServ:      notaServ,
		NotaTempo:     notaTempo,
		Opiniao:       optionalText(form, "opiniao"),
	}
	if err := util.ValidateStruct(payload); err != nil {
		return zero, resource.Invalid("", msgEvalSave)
	}
	return payload, nil
}

func parseNota(raw string) (int, bool) {
	nota, err := strconv.Atoi(raw)
	if err != nil || nota < 0 || nota > 10 {
		return 0, false
	}
	return nota, true
}

func (e *Evaluation) setError(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Error = msg
}
