package main

import (
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// 邮件模板所在目录，相对于工作目录
var templateDir = "./templates"

type mailTemplate struct {
	file    string
	subject string
}

var mailTemplates = map[string]mailTemplate{
	domain.MailTypeOptimizationCompleted: {
		file:    "optimization_completed_email.html",
		subject: "资源分配优化系统 - 优化完成",
	},
	domain.MailTypeBudgetAlert: {
		file:    "budget_alert_email.html",
		subject: "资源分配优化系统 - 预算告警",
	},
}

// buildMessage 根据邮件类型选择模板并生成邮件
func buildMessage(from string, mailMessage domain.MailMessage) (*mail.Msg, error) {
	mt, ok := mailTemplates[mailMessage.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %q", mailMessage.Type)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(mailMessage.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	tmpl, err := template.ParseFiles(filepath.Join(templateDir, mt.file))
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}
	if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	m.Subject(mt.subject)

	return m, nil
}
