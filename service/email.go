package service

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"spendlens/config"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 邮件服务是否启用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendBudgetAlert 发送预算超支提醒
func (s *EmailService) SendBudgetAlert(toEmail, username string, alert BudgetAlert) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用，请配置 SPENDLENS_EMAIL_ENABLED=true")
	}

	subject := fmt.Sprintf("【SpendLens】%s %s已超支", alert.Month, budgetLabel(alert))
	return s.sendEmail(toEmail, subject, s.generateBudgetAlertBody(username, alert))
}

func budgetLabel(alert BudgetAlert) string {
	if alert.Category == "" {
		return "总预算"
	}
	return string(alert.Category) + " 预算"
}

// generateBudgetAlertBody 生成预算提醒邮件内容
func (s *EmailService) generateBudgetAlertBody(username string, alert BudgetAlert) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #ef4444, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        td { padding: 10px; border-bottom: 1px solid #eee; }
        td.value { text-align: right; font-weight: 600; }
        .over { color: #b91c1c; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 SpendLens 预算提醒</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>您 %s 的<strong>%s</strong>已经超出设定额度：</p>
            <table>
                <tr><td>预算额度</td><td class="value">%.2f</td></tr>
                <tr><td>已消费</td><td class="value over">%.2f</td></tr>
                <tr><td>使用比例</td><td class="value over">%.2f%%</td></tr>
            </table>
            <p>本月内该预算不会再次提醒。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>
`, username, alert.Month, budgetLabel(alert), alert.Limit, alert.Spent, alert.Percent)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用")
	}

	subject := "【SpendLens】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 邮件配置成功</h2>
    <p>如果您收到这封邮件，说明预算提醒邮件可以正常发送。</p>
    <p style="color: #666;">—— SpendLens</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
