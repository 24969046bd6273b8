package relatorio

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

const separador = "━━━━━━━━━━━━━━━━━━━━━"

// FormatarResumo gera o relatório de vendas em texto, no formato usado para
// compartilhamento via aplicativo de mensagens. Função pura: recebe tudo pronto.
func FormatarResumo(estat domain.Estatisticas, geradoEm time.Time) string {
	var b strings.Builder

	b.WriteString("📊 *RELATÓRIO DE VENDAS*\n\n")
	fmt.Fprintf(&b, "🎁 *Prêmio:* %s\n", estat.Rifa.NomePremio)
	if estat.Rifa.DataSorteio != "" {
		fmt.Fprintf(&b, "🗓️ *Sorteio:* %s\n", estat.Rifa.DataSorteio)
	}
	if estat.Rifa.PrecoNumero != nil {
		fmt.Fprintf(&b, "💰 *Valor:* R$ %s\n", formatarReal(*estat.Rifa.PrecoNumero))
	}
	fmt.Fprintf(&b, "📅 *Relatório gerado:* %s\n", geradoEm.Format("02/01/2006 15:04"))
	b.WriteString(separador + "\n\n")

	b.WriteString("📈 *RESUMO GERAL*\n")
	fmt.Fprintf(&b, "🎯 Números vendidos: *%d*\n", estat.Totais.NumerosVendidos)
	fmt.Fprintf(&b, "👥 Participantes: *%d*\n", estat.Totais.Participantes)
	if estat.Arrecadado != nil {
		fmt.Fprintf(&b, "💵 Arrecadado: *R$ %s*\n", formatarReal(*estat.Arrecadado))
	}
	b.WriteString("\n")

	if len(estat.Vendedores) > 0 {
		b.WriteString("🏆 *RANKING DE VENDEDORES*\n")
		for i, vendedor := range estat.Vendedores {
			fmt.Fprintf(&b, "%s *%s* — %d vendas, %d números\n",
				medalha(i), vendedor.Vendedor, vendedor.Vendas, vendedor.TotalNumeros)
		}
		b.WriteString("\n")
	}

	if len(estat.Compradores) > 0 {
		b.WriteString("🎟️ *RANKING DE COMPRADORES*\n")
		compradores := estat.Compradores
		if len(compradores) > 10 {
			compradores = compradores[:10]
		}
		for i, comprador := range compradores {
			fmt.Fprintf(&b, "%s *%s* — %d números (vendedor: %s)\n",
				medalha(i), comprador.Nome, comprador.Quantidade, comprador.Vendedor)
		}
		b.WriteString("\n")
	}

	b.WriteString(separador + "\n")
	b.WriteString("✨ _Relatório gerado automaticamente_")

	return b.String()
}

func medalha(posicao int) string {
	switch posicao {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%dº", posicao+1)
	}
}

// formatarReal segue a convenção brasileira de vírgula decimal.
func formatarReal(valor float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", valor), ".", ",")
}
