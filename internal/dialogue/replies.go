package dialogue

import (
	"fmt"
	"strings"

	"github.com/clinicware/agendabot/internal/schedule"
)

// ClinicInfo is the identity printed in greetings and confirmations.
type ClinicInfo struct {
	Name    string
	Address string
	Phone   string
}

func (m *Machine) greeting() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá! Você está falando com o assistente da %s.\n", m.cfg.Clinic.Name)
	fmt.Fprintf(&b, "Endereço: %s.\n", m.cfg.Clinic.Address)
	if m.cfg.Clinic.Phone != "" {
		fmt.Fprintf(&b, "Telefone: %s.\n", m.cfg.Clinic.Phone)
	}
	b.WriteString("Posso ajudar a agendar uma consulta? (responda Sim ou Não)")
	return b.String()
}

const (
	replyYesNoReprompt     = "Não entendi. Responda com Sim ou Não, por favor."
	replyGoodbye           = "Sem problemas! Se precisar, envie \"menu\" para recomeçar."
	replyAskName           = "Certo! Qual o seu nome completo?"
	replyNameReprompt      = "Pode me informar seu nome completo, por favor?"
	replyAskInsurance      = "O atendimento será por convênio (plano de saúde) ou particular?"
	replyInsuranceReprompt = "Por favor, responda \"particular\" ou \"convênio\"."
	replyAskPlanName       = "Qual o nome do seu plano de saúde?"
	replyPlanReprompt      = "Pode me dizer o nome do seu plano, por favor?"
	replyAskReason         = "Perfeito. Qual o motivo da consulta?"
	replyDateReprompt      = "Não entendi a data. Pode dizer algo como \"amanhã\" ou \"próxima quarta\"?"
	replyNoSlots           = "Não encontrei horários livres nos próximos dias. Pode me dizer um dia de preferência? (ex.: amanhã, próxima quarta)"
	replySlotTaken         = "Poxa, esse horário acabou de ser ocupado. Vamos tentar outro: qual o motivo da consulta mesmo?"
	replyDeclinedSlot      = "Sem problemas. Qual o motivo da consulta?"
	replyAlreadyBooked     = "Você já tem um agendamento confirmado. Envie \"menu\" se quiser remarcar."
)

func leadTimeNotice(planName string) string {
	return fmt.Sprintf("Obrigado! Atendimentos pelo plano %s exigem agendamento com no mínimo 14 dias de antecedência. Qual o motivo da consulta?", planName)
}

func leadTimeAdjusted(planName string) string {
	return fmt.Sprintf("Pelo plano %s o agendamento precisa de 14 dias de antecedência, então busquei a partir da primeira data possível.", planName)
}

func proposalList(slots []schedule.Slot, prefix string) string {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteString("\n")
	}
	b.WriteString("Tenho estes horários:\n")
	for i, s := range slots {
		fmt.Fprintf(&b, "%d) %s\n", i+1, s.Label())
	}
	b.WriteString(chooseInstruction(len(slots)))
	return b.String()
}

func chooseInstruction(n int) string {
	switch n {
	case 1:
		return "Responda com 1 para escolher, ou diga outro dia de preferência."
	case 2:
		return "Responda com 1 ou 2 para escolher, ou diga outro dia de preferência."
	case 3:
		return "Responda com 1, 2 ou 3 para escolher, ou diga outro dia de preferência."
	default:
		return fmt.Sprintf("Responda com um número de 1 a %d para escolher, ou diga outro dia de preferência.", n)
	}
}

func chooseReprompt(n int) string {
	switch n {
	case 1:
		return "Por favor, escolha o horário respondendo 1, ou diga outro dia."
	case 2:
		return "Por favor, escolha 1 ou 2, ou diga outro dia."
	case 3:
		return "Por favor, escolha 1, 2 ou 3, ou diga outro dia."
	default:
		return fmt.Sprintf("Por favor, escolha um número de 1 a %d, ou diga outro dia.", n)
	}
}

func confirmPrompt(slot schedule.Slot) string {
	return fmt.Sprintf("Você confirma %s? (Sim/Não)", slot.Label())
}

func (m *Machine) bookedConfirmation(slot schedule.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agendamento confirmado para %s.\n", slot.LongLabel())
	fmt.Fprintf(&b, "%s\n%s\n", m.cfg.Clinic.Name, m.cfg.Clinic.Address)
	if m.cfg.Clinic.Phone != "" {
		fmt.Fprintf(&b, "Dúvidas: %s\n", m.cfg.Clinic.Phone)
	}
	b.WriteString("Se precisar remarcar, envie \"menu\" para recomeçar.")
	return b.String()
}
